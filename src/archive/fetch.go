package archive

import (
	"context"

	"github.com/permadoc/permadoc/src/utils/gateway"
)

// Downloads a document payload. Works in every client state, reads
// need no signing capability. The bundler node is asked first, a raw
// gateway fetch through the resolved healthy gateway is the fallback.
func (self *Archive) GetDocument(ctx context.Context, id string) (out []byte, err error) {
	if len(id) == 0 {
		err = ErrDocumentIdEmpty
		return
	}

	out, err = self.store.GetData(ctx, id)
	if err == nil {
		self.monitor.Report.Archive.State.Fetches.Inc()
		return
	}

	self.Log.WithError(err).WithField("id", id).Debug("Bundler fetch failed, falling back to the gateway")

	out, err = self.fetchRaw(ctx, id)
	if err != nil {
		self.monitor.Report.Archive.Errors.FetchErrors.Inc()
		return
	}

	self.monitor.Report.Archive.State.FetchesFallback.Inc()
	return
}

// Confirmation depth of a committed document on chain
func (self *Archive) GetDocumentStatus(ctx context.Context, id string) (out *gateway.TxStatus, err error) {
	return self.gateway.GetTxStatus(ctx, id)
}

// Raw HTTP fetch against the healthiest known gateway
func (self *Archive) fetchRaw(ctx context.Context, id string) (out []byte, err error) {
	url, err := self.resolver.Resolve(ctx)
	if err != nil {
		return
	}

	ctx = context.WithValue(ctx, gateway.ContextForcePeer, url)

	return self.gateway.GetData(ctx, id)
}
