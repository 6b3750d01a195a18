package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/awisniewski/tiredepot-backend/api/controllers"
	"github.com/awisniewski/tiredepot-backend/api/middleware"
	"github.com/awisniewski/tiredepot-backend/internal/alerts"
	"github.com/awisniewski/tiredepot-backend/internal/appointments"
	"github.com/awisniewski/tiredepot-backend/internal/clients"
	"github.com/awisniewski/tiredepot-backend/internal/deposits"
	"github.com/awisniewski/tiredepot-backend/internal/inventory"
	"github.com/awisniewski/tiredepot-backend/internal/notifications"
	"github.com/awisniewski/tiredepot-backend/internal/orders"
	"github.com/awisniewski/tiredepot-backend/pkg/config"
	"github.com/awisniewski/tiredepot-backend/pkg/db"
	"github.com/awisniewski/tiredepot-backend/pkg/logger"
	pkgredis "github.com/awisniewski/tiredepot-backend/pkg/redis"
)

// Services groups everything the router wires into handlers.
type Services struct {
	Clients       clients.Service
	Inventory     inventory.Service
	Deposits      deposits.Service
	Appointments  appointments.Service
	Orders        orders.Service
	Notifications notifications.Service
	Alerts        alerts.Evaluator
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	var idemStore pkgredis.IdempotencyStore
	var cachePing pkgredis.Pinger
	if redisClient != nil {
		idemStore = redisClient
		cachePing = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, cachePing))
	})

	r.Get("/api/public/ping", controllers.Ping())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", controllers.ClientList(svcs.Clients, logg))
			r.Post("/", controllers.ClientCreate(svcs.Clients, logg))
			r.Get("/{clientId}", controllers.ClientDetail(svcs.Clients, logg))
			r.Put("/{clientId}", controllers.ClientUpdate(svcs.Clients, logg))
			r.Delete("/{clientId}", controllers.ClientDelete(svcs.Clients, logg))
			r.Get("/{clientId}/vehicles", controllers.ClientVehicleList(svcs.Clients, logg))
			r.Post("/{clientId}/vehicles", controllers.ClientVehicleAdd(svcs.Clients, logg))
			r.Delete("/{clientId}/vehicles/{vehicleId}", controllers.ClientVehicleRemove(svcs.Clients, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/items", controllers.StockItemList(svcs.Inventory, logg))
			r.Post("/items", controllers.StockItemCreate(svcs.Inventory, logg))
			r.Get("/items/low-stock", controllers.StockLowList(svcs.Inventory, logg))
			r.Get("/items/{itemId}", controllers.StockItemDetail(svcs.Inventory, logg))
			r.Put("/items/{itemId}", controllers.StockItemUpdate(svcs.Inventory, logg))
			r.Post("/items/{itemId}/adjust", controllers.StockAdjust(svcs.Inventory, logg))
			r.Get("/items/{itemId}/adjustments", controllers.StockAdjustments(svcs.Inventory, logg))
		})

		r.Route("/deposits", func(r chi.Router) {
			r.Get("/", controllers.DepositList(svcs.Deposits, logg))
			r.Post("/", controllers.DepositIntake(svcs.Deposits, logg))
			r.Get("/{depositId}", controllers.DepositDetail(svcs.Deposits, logg))
			r.Post("/{depositId}/notify", controllers.DepositMarkNotified(svcs.Deposits, logg))
			r.Post("/{depositId}/release", controllers.DepositRelease(svcs.Deposits, logg))
			r.Post("/{depositId}/forfeit", controllers.DepositForfeit(svcs.Deposits, logg))
		})

		r.Route("/storage-locations", func(r chi.Router) {
			r.Get("/", controllers.StorageLocationList(svcs.Deposits, logg))
			r.Post("/", controllers.StorageLocationCreate(svcs.Deposits, logg))
		})

		r.Route("/appointments", func(r chi.Router) {
			r.Get("/", controllers.AppointmentList(svcs.Appointments, logg))
			r.Post("/", controllers.AppointmentSchedule(svcs.Appointments, logg))
			r.Get("/upcoming", controllers.AppointmentUpcoming(svcs.Appointments, logg))
			r.Get("/{appointmentId}", controllers.AppointmentDetail(svcs.Appointments, logg))
			r.Post("/{appointmentId}/reschedule", controllers.AppointmentReschedule(svcs.Appointments, logg))
			r.Post("/{appointmentId}/cancel", controllers.AppointmentCancel(svcs.Appointments, logg))
			r.Post("/{appointmentId}/complete", controllers.AppointmentComplete(svcs.Appointments, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(svcs.Orders, logg))
			r.Post("/", controllers.OrderPlace(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(svcs.Orders, logg))
			r.Post("/{orderId}/fulfill", controllers.OrderFulfill(svcs.Orders, logg))
			r.Post("/{orderId}/cancel", controllers.OrderCancel(svcs.Orders, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
		})

		r.Get("/alerts/pending", controllers.AlertsPending(svcs.Alerts, logg))
	})

	return r
}
