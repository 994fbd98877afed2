package router

import (
	"pixelfood/internal/config"
	"pixelfood/internal/guard"
	"pixelfood/internal/handler"
	"pixelfood/internal/infra"
	"pixelfood/internal/middleware"
	"pixelfood/internal/repository"
	"pixelfood/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
)

// Deps are the long-lived pieces built by main.
type Deps struct {
	Client  *infra.BackendClient
	Session *service.AuthSession
	Store   repository.SessionStore
	Queue   service.ReciboQueue
	Limiter *middleware.Limiter
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Store ← BackendClient
func New(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins, cfg.Env == "production"))
	r.Use(middleware.ErrorHandler())
	if d.Limiter != nil {
		r.Use(d.Limiter.Handler())
	}

	// ── Services ─────────────────────────────────────────────────────────────
	session := d.Session
	carrito := service.NewCarrito()
	session.OnLogout(carrito.Clear)

	catalogo := service.NewCatalogo(d.Client, session)
	workflow := service.NewPedidoWorkflow(catalogo, carrito, session)
	pago := service.NewPagoSession(catalogo, session, d.Queue, cfg.TaxRate)
	session.OnLogout(pago.Reset)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(session)
	recursosH := handler.NewRecursosHandler(catalogo)
	carritoH := handler.NewCarritoHandler(carrito, catalogo)
	pedidosH := handler.NewPedidosHandler(workflow)
	pagoH := handler.NewPagoHandler(pago, cfg.BusinessName, cfg.ReceiptStoragePath)
	inventarioH := handler.NewInventarioHandler(catalogo)

	// ── Routes ───────────────────────────────────────────────────────────────
	gate := func(ruta string) gin.HandlerFunc {
		return middleware.RequireAccess(session, guard.PolicyDe(ruta), cfg.LandingPath, cfg.LoginPath)
	}

	// Public
	r.GET("/health", handler.Health(d.Client.Breaker(), d.Store))

	// Session (public once resolved)
	auth := r.Group("/v1/auth", middleware.RequireResolved(session))
	{
		auth.POST("/login", middleware.LoginLimiter().Handler(), authH.Login)
		auth.POST("/logout", authH.Logout)
	}
	r.GET("/v1/sesion", middleware.RequireResolved(session), authH.Sesion)

	v1 := r.Group("/v1")
	{
		// Generic collections; the handler checks each kind's own policies.
		rec := v1.Group("/recursos/:kind", gate("/home"))
		{
			rec.GET("", recursosH.Listar)
			rec.POST("", recursosH.Crear)
			rec.GET("/:id", recursosH.Obtener)
			rec.PUT("/:id", recursosH.Actualizar)
			rec.DELETE("/:id", recursosH.Eliminar)
		}

		cart := v1.Group("/carrito", gate("/menu"))
		{
			cart.GET("", carritoH.Ver)
			cart.POST("", carritoH.Agregar)
			cart.PATCH("/:id", carritoH.Actualizar)
			cart.DELETE("/:id", carritoH.Quitar)
			cart.DELETE("", carritoH.Vaciar)
		}

		ped := v1.Group("/pedidos", gate("/pedidos"))
		{
			ped.GET("", pedidosH.Listar)
			ped.GET("/formulario", pedidosH.Formulario)
			ped.POST("", pedidosH.Enviar)
			ped.GET("/:id/detalles", pedidosH.Detalles)
		}
		adminPed := v1.Group("/pedidos/:id", gate("/admin/pedidos"))
		{
			adminPed.PATCH("/estado", pedidosH.CambiarEstado)
			adminPed.POST("/items", pedidosH.AgregarItem)
		}

		cobro := v1.Group("/pago", gate("/caja"))
		{
			cobro.POST("/:id", pagoH.Cargar)
			cobro.GET("", pagoH.Estado)
			cobro.POST("/confirmar", pagoH.Confirmar)
			cobro.GET("/recibo", pagoH.Recibo)
			cobro.GET("/recibo/pdf", pagoH.ReciboPDF)
			cobro.POST("/recibo/enviar", pagoH.EnviarRecibo)
		}

		v1.POST("/reservas", gate("/reservas"), inventarioH.Reservar)
		v1.GET("/resumen", gate("/admin"), inventarioH.Resumen)
		v1.GET("/recetas/plato/:id", gate("/admin/recetas"), inventarioH.Recetas)

		inv := v1.Group("/inventario", gate("/admin/ingredientes"))
		{
			inv.PATCH("/ingredientes/:id/stock", inventarioH.AjustarStock)
			inv.GET("/alertas", inventarioH.Alertas)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
