package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/permadoc/permadoc/src/archive"
	"github.com/permadoc/permadoc/src/batch"
	"github.com/permadoc/permadoc/src/store"
	"github.com/permadoc/permadoc/src/utils/gateway"

	"github.com/gin-gonic/gin"
)

type UploadDocumentRequest struct {
	// Standard base64 encoded payload
	Payload        []byte            `json:"payload" binding:"required"`
	Name           string            `json:"name"`
	ContentType    string            `json:"content_type"`
	CorrelationIds map[string]string `json:"correlation_ids"`
	Encrypted      bool              `json:"encrypted"`
	Tags           map[string]string `json:"tags"`
	BatchId        string            `json:"batch_id"`
}

type QueryDocumentsRequest struct {
	CorrelationIds map[string]string `json:"correlation_ids"`
	Tags           map[string]string `json:"tags"`
	Limit          int               `json:"limit"`
	After          string            `json:"after"`
}

type CreateBatchRequest struct {
	MaxFiles  int    `json:"max_files"`
	MaxBytes  int64  `json:"max_bytes"`
	TimeoutMs int64  `json:"timeout_ms"`
	Mode      string `json:"mode"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (self *Server) abort(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	var balanceErr *store.InsufficientBalanceError
	switch {
	case errors.As(err, &balanceErr):
		status = http.StatusPaymentRequired
	case errors.Is(err, gateway.ErrPending):
		status = http.StatusAccepted
	case errors.Is(err, gateway.ErrNotFound) || errors.Is(err, store.ErrNotFound) || errors.Is(err, batch.ErrBatchNotFound):
		status = http.StatusNotFound
	case errors.Is(err, batch.ErrBatchNotPending):
		status = http.StatusConflict
	case errors.Is(err, store.ErrNotInitialized):
		status = http.StatusServiceUnavailable
	case errors.Is(err, batch.ErrEmptyBatch),
		errors.Is(err, archive.ErrEmptyPayload),
		errors.Is(err, archive.ErrBadCorrelationKey),
		errors.Is(err, archive.ErrDocumentIdEmpty):
		status = http.StatusBadRequest
	}

	self.Log.WithError(err).WithField("status", status).Debug("Request failed")
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error()})
}

func (self *Server) onUploadDocument(c *gin.Context) {
	in := new(UploadDocumentRequest)
	err := c.ShouldBindJSON(in)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	out, err := self.archive.UploadDocument(c.Request.Context(), in.Payload,
		archive.Metadata{
			Name:           in.Name,
			ContentType:    in.ContentType,
			CorrelationIds: in.CorrelationIds,
			Encrypted:      in.Encrypted,
		},
		archive.UploadOptions{
			Tags:    in.Tags,
			BatchId: in.BatchId,
		})
	if err != nil {
		self.abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, out)
}

func (self *Server) onGetDocument(c *gin.Context) {
	out, err := self.archive.GetDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		self.abort(c, err)
		return
	}

	c.Data(http.StatusOK, "application/octet-stream", out)
}

func (self *Server) onGetDocumentStatus(c *gin.Context) {
	out, err := self.archive.GetDocumentStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		self.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

func (self *Server) onQueryDocuments(c *gin.Context) {
	in := new(QueryDocumentsRequest)
	err := c.ShouldBindJSON(in)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	out, err := self.archive.QueryDocuments(c.Request.Context(), archive.QueryOptions{
		CorrelationIds: in.CorrelationIds,
		Tags:           in.Tags,
		Limit:          in.Limit,
		After:          in.After,
	})
	if err != nil {
		self.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

func (self *Server) onGetBalance(c *gin.Context) {
	c.JSON(http.StatusOK, self.archive.CheckBalance(c.Request.Context()))
}

func (self *Server) onCreateBatch(c *gin.Context) {
	in := new(CreateBatchRequest)
	err := c.ShouldBindJSON(in)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	limits := batch.Limits{
		MaxFiles: in.MaxFiles,
		MaxBytes: in.MaxBytes,
	}
	if in.TimeoutMs > 0 {
		limits.Timeout = time.Duration(in.TimeoutMs) * time.Millisecond
	}

	var id string
	if in.Mode == "auto" {
		id = self.archive.EnableAutoBatching(limits)
	} else {
		id = self.archive.CreateBatch(limits)
	}

	out, err := self.archive.BatchStatus(id)
	if err != nil {
		self.abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, out)
}

func (self *Server) onListBatches(c *gin.Context) {
	c.JSON(http.StatusOK, self.archive.ListBatches())
}

func (self *Server) onBatchStatus(c *gin.Context) {
	out, err := self.archive.BatchStatus(c.Param("id"))
	if err != nil {
		self.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

func (self *Server) onCommitBatch(c *gin.Context) {
	out, err := self.archive.CommitBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		self.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}
