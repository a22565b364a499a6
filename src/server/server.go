package server

import (
	"context"
	"net/http"

	"github.com/permadoc/permadoc/src/archive"
	"github.com/permadoc/permadoc/src/utils/config"
	"github.com/permadoc/permadoc/src/utils/task"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Rest API server, exposes the archive operations and monitor counters
type Server struct {
	*task.Task

	httpServer *http.Server
	Router     *gin.Engine

	archive *archive.Archive
}

func NewServer(config *config.Config) (self *Server) {
	self = new(Server)

	self.Task = task.NewTask(config, "server").
		WithSubtaskFunc(self.run).
		WithOnStop(self.stop)

	self.Router = gin.New()

	self.httpServer = &http.Server{
		Addr:    self.Config.RESTListenAddress,
		Handler: self.Router,
	}

	return
}

func (self *Server) WithArchive(archive *archive.Archive) *Server {
	self.archive = archive
	return self
}

func (self *Server) run() (err error) {
	if self.Config.IsDevelopment {
		gin.SetMode(gin.DebugMode)
		pprof.Register(self.Router)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	monitor := self.archive.Monitor()

	registry := prometheus.NewRegistry()
	registry.MustRegister(monitor.GetPrometheusCollector())

	v1 := self.Router.Group("v1")
	{
		v1.GET("health", monitor.OnGetHealth)
		v1.GET("state", monitor.OnGetState)
		v1.GET("metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

		v1.POST("documents", self.onUploadDocument)
		v1.GET("documents/:id", self.onGetDocument)
		v1.GET("documents/:id/status", self.onGetDocumentStatus)
		v1.POST("query", self.onQueryDocuments)
		v1.GET("balance", self.onGetBalance)

		v1.POST("batches", self.onCreateBatch)
		v1.GET("batches", self.onListBatches)
		v1.GET("batches/:id", self.onBatchStatus)
		v1.POST("batches/:id/commit", self.onCommitBatch)
	}

	err = self.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		self.Log.WithError(err).Error("Failed to start REST server")
		return
	}
	return nil
}

func (self *Server) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), self.Config.StopTimeout)
	defer cancel()

	err := self.httpServer.Shutdown(ctx)
	if err != nil {
		self.Log.WithError(err).Error("Failed to gracefully shutdown REST server")
		return
	}
}
