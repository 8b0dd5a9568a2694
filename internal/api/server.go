package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fleetlens/internal/ai"
	"fleetlens/internal/annotate"
	"fleetlens/internal/entity"
	"fleetlens/internal/storage"
)

// Analyzer produces a damage report for stored before/after image files.
// Satisfied by *ai.Gateway.
type Analyzer interface {
	Analyze(ctx context.Context, beforePaths, afterPaths []string, car ai.CarMeta) (*entity.DamageReport, error)
}

// Server owns the router and the components the handlers orchestrate.
type Server struct {
	router      *gin.Engine
	log         *logrus.Logger
	analyzer    Analyzer
	store       *storage.ImageStore
	annotator   *annotate.Annotator
	inspections *storage.InspectionRepository
	cars        *storage.CarRepository
	bookings    *storage.BookingRepository

	maxUploadBytes int64
}

// Options carries the wired components into New.
type Options struct {
	Log            *logrus.Logger
	Analyzer       Analyzer
	Store          *storage.ImageStore
	Annotator      *annotate.Annotator
	Inspections    *storage.InspectionRepository
	Cars           *storage.CarRepository
	Bookings       *storage.BookingRepository
	UploadDir      string
	MaxUploadBytes int64
}

// New builds the router with all routes registered.
func New(opts Options) *Server {
	s := &Server{
		log:            opts.Log,
		analyzer:       opts.Analyzer,
		store:          opts.Store,
		annotator:      opts.Annotator,
		inspections:    opts.Inspections,
		cars:           opts.Cars,
		bookings:       opts.Bookings,
		maxUploadBytes: opts.MaxUploadBytes,
	}

	router := gin.New()
	router.Use(gin.Recovery(), corsMiddleware())
	router.MaxMultipartMemory = 32 << 20

	api := router.Group("/api")
	{
		api.GET("/health", s.health)

		api.POST("/inspect", s.inspect)
		api.GET("/inspections", s.listInspections)
		api.GET("/inspections/:id", s.getInspection)

		api.POST("/cars", s.createCar)
		api.GET("/cars", s.listCars)
		api.GET("/cars/:id", s.getCar)
		api.PUT("/cars/:id", s.updateCar)
		api.DELETE("/cars/:id", s.deleteCar)

		api.POST("/bookings", s.createBooking)
		api.GET("/bookings", s.listBookings)
		api.GET("/bookings/:id", s.getBooking)
		api.PUT("/bookings/:id", s.updateBooking)
		api.DELETE("/bookings/:id", s.deleteBooking)
	}

	router.Static("/uploads", opts.UploadDir)

	s.router = router
	return s
}

// Router exposes the gin engine for tests and embedding.
func (s *Server) Router() *gin.Engine { return s.router }

// Run blocks serving HTTP on addr.
func (s *Server) Run(addr string) error {
	s.log.WithField("addr", addr).Info("server starting")
	return s.router.Run(addr)
}

func (s *Server) health(c *gin.Context) {
	respondOK(c, http.StatusOK, "vehicle damage inspection service is healthy", nil)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
