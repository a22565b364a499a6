package archive

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/permadoc/permadoc/src/batch"
	"github.com/permadoc/permadoc/src/store"
	"github.com/permadoc/permadoc/src/utils/bundle"
	"github.com/permadoc/permadoc/src/utils/gateway"
	"github.com/permadoc/permadoc/src/utils/task"
	"github.com/permadoc/permadoc/src/utils/tool"

	"github.com/cenkalti/backoff/v4"
)

const anchorLength = 32

// Tags derived from metadata, in a stable order so the same document
// always produces the same tag list
func (self *Archive) buildTags(metadata Metadata, extra map[string]string) (out bundle.Tags, err error) {
	out = bundle.Tags{
		{Name: TagAppName, Value: self.Config.Archive.AppName},
	}

	if len(metadata.ContentType) > 0 {
		out = append(out, bundle.Tag{Name: TagContentType, Value: metadata.ContentType})
	}
	if len(metadata.Name) > 0 {
		out = append(out, bundle.Tag{Name: TagFileName, Value: metadata.Name})
	}
	out = append(out, bundle.Tag{Name: TagEncrypted, Value: strconv.FormatBool(metadata.Encrypted)})

	for _, key := range sortedKeys(metadata.CorrelationIds) {
		name, err := correlationTagName(key)
		if err != nil {
			return nil, err
		}
		out = append(out, bundle.Tag{Name: name, Value: metadata.CorrelationIds[key]})
	}

	for _, name := range sortedKeys(extra) {
		out = append(out, bundle.Tag{Name: name, Value: extra[name]})
	}

	return
}

func sortedKeys(m map[string]string) (out []string) {
	out = make([]string, 0, len(m))
	for key := range m {
		out = append(out, key)
	}
	sort.Strings(out)
	return
}

// Stores one document. Routed into a batch when one is requested or
// auto-batching is on, otherwise uploaded right away through the best
// available tier.
func (self *Archive) UploadDocument(ctx context.Context, payload []byte, metadata Metadata, options UploadOptions) (out *UploadResult, err error) {
	if len(payload) == 0 {
		err = ErrEmptyPayload
		return
	}

	tags, err := self.buildTags(metadata, options.Tags)
	if err != nil {
		return
	}

	batchId := options.BatchId
	if len(batchId) == 0 {
		batchId = self.batches.AutoBatchId()
	}

	if len(batchId) > 0 {
		err = self.batches.Add(ctx, batchId, &batch.Member{
			Key:  metadata.Name,
			Data: payload,
			Tags: tags,
		})
		if err != nil {
			return
		}

		out = &UploadResult{
			Size:        int64(len(payload)),
			ContentType: metadata.ContentType,
			BatchId:     batchId,
			Queued:      true,
		}
		return
	}

	id, err := self.uploadSingle(ctx, payload, tags)
	if err != nil {
		return
	}

	out = &UploadResult{
		Id:          id,
		Url:         self.documentUrl(id),
		Size:        int64(len(payload)),
		ContentType: metadata.ContentType,
	}
	return
}

// Uploads every file as one batch and commits it in the same call
func (self *Archive) UploadBatch(ctx context.Context, files []File, bundleTags map[string]string) (out *batch.CommitResult, err error) {
	if len(files) == 0 {
		err = ErrNoFiles
		return
	}

	// Sized so the explicit commit below is the only trigger
	id := self.batches.Create(batch.Limits{
		MaxFiles: len(files) + 1,
		MaxBytes: int64(1) << 62,
	})
	self.monitor.Report.Batch.State.BatchesCreated.Inc()

	for _, file := range files {
		metadata := file.Metadata
		if len(metadata.Name) == 0 {
			metadata.Name = file.Key
		}

		tags, tagErr := self.buildTags(metadata, bundleTags)
		if tagErr != nil {
			err = tagErr
			return
		}

		err = self.batches.Add(ctx, id, &batch.Member{
			Key:  file.Key,
			Data: file.Data,
			Tags: tags,
		})
		if err != nil {
			return
		}
	}

	return self.batches.Commit(ctx, id)
}

// Tier 1: bundler node. Tier 2: direct protocol transaction.
// Balance problems are final, a different tier would not fix funding.
func (self *Archive) uploadSingle(ctx context.Context, payload []byte, tags bundle.Tags) (id string, err error) {
	id, err = self.uploadBundled(ctx, payload, tags)
	if err == nil {
		self.monitor.Report.Archive.State.UploadsBundled.Inc()
		self.monitor.Report.Archive.State.BytesUploaded.Add(uint64(len(payload)))
		return
	}

	var balanceErr *store.InsufficientBalanceError
	if errors.As(err, &balanceErr) {
		self.monitor.Report.Archive.Errors.InsufficientBalance.Inc()
		return
	}

	self.Log.WithError(err).Info("Bundler path unusable, falling back to a direct transaction")

	id, directErr := self.uploadDirect(ctx, payload, tags)
	if directErr != nil {
		self.Log.WithError(directErr).Error("Direct transaction fallback failed")
		self.monitor.Report.Archive.Errors.UploadErrors.Inc()

		// The bundler failure is the primary cause
		return "", err
	}

	self.monitor.Report.Archive.State.UploadsDirect.Inc()
	self.monitor.Report.Archive.State.BytesUploaded.Add(uint64(len(payload)))
	return id, nil
}

func (self *Archive) uploadBundled(ctx context.Context, payload []byte, tags bundle.Tags) (id string, err error) {
	signer := self.store.Signer()
	if signer == nil {
		err = store.ErrNotInitialized
		return
	}

	item := &bundle.DataItem{
		Data:   payload,
		Tags:   tags,
		Anchor: tool.RandomBytes(anchorLength),
	}

	err = item.Sign(signer)
	if err != nil {
		return
	}

	response, err := self.store.Upload(ctx, item)
	if err != nil {
		return
	}

	id = response.Id
	return
}

// Builds, signs and submits a protocol level transaction, bypassing
// the bundling service entirely. Single chunk only, bigger payloads
// have no fallback past the bundler.
func (self *Archive) uploadDirect(ctx context.Context, payload []byte, tags bundle.Tags) (id string, err error) {
	signer := self.store.Signer()
	if signer == nil {
		err = ErrNoSigner
		return
	}

	anchor, err := self.gateway.GetTxAnchor(ctx)
	if err != nil {
		return
	}

	reward, err := self.gateway.GetPrice(ctx, len(payload))
	if err != nil {
		return
	}

	tx, err := gateway.NewTransaction(payload, tags, anchor, reward)
	if err != nil {
		return
	}

	err = tx.Sign(signer)
	if err != nil {
		return
	}

	err = self.gateway.SubmitTransaction(ctx, tx)
	if err != nil {
		return
	}

	id = tx.ID
	return
}

// Commits one claimed batch: every member becomes a signed nested item,
// the whole set goes up as a single bundle. All or nothing, a failed
// submission commits no member.
func (self *Archive) CommitMembers(ctx context.Context, members []*batch.Member) (out *batch.CommitResult, err error) {
	signer := self.store.Signer()
	if signer == nil {
		self.monitor.Report.Batch.Errors.CommitErrors.Inc()
		err = store.ErrNotInitialized
		return
	}

	items := make([]*bundle.DataItem, 0, len(members))
	for _, member := range members {
		item := &bundle.DataItem{
			Data:   member.Data,
			Tags:   member.Tags,
			Anchor: tool.RandomBytes(anchorLength),
		}

		err = item.Sign(signer)
		if err != nil {
			self.monitor.Report.Batch.Errors.CommitErrors.Inc()
			return
		}

		items = append(items, item)
	}

	parent := &bundle.DataItem{
		Anchor: tool.RandomBytes(anchorLength),
		Tags: bundle.Tags{
			{Name: TagAppName, Value: self.Config.Archive.AppName},
		},
	}

	err = parent.NestItems(items)
	if err != nil {
		self.monitor.Report.Batch.Errors.CommitErrors.Inc()
		return
	}

	err = parent.Sign(signer)
	if err != nil {
		self.monitor.Report.Batch.Errors.CommitErrors.Inc()
		return
	}

	// Transient node failures get retried, everything else is final
	var response *store.UploadResponse
	err = task.NewRetry().
		WithContext(ctx).
		WithMaxElapsedTime(time.Minute).
		WithMaxInterval(10 * time.Second).
		WithOnError(func(err error) {
			self.Log.WithError(err).Warn("Bundle submission failed, retrying")
		}).
		Run(func() error {
			var uploadErr error
			response, uploadErr = self.store.Upload(ctx, parent)
			if uploadErr == nil {
				return nil
			}

			var nodeErr *store.UploadError
			if errors.As(uploadErr, &nodeErr) && nodeErr.Err != nil {
				return uploadErr
			}
			return backoff.Permanent(uploadErr)
		})
	if err != nil {
		self.monitor.Report.Batch.Errors.CommitErrors.Inc()
		return
	}

	out = &batch.CommitResult{
		BundleId:  response.Id,
		BundleUrl: self.documentUrl(response.Id),
		Items:     make([]batch.CommittedItem, 0, len(members)),
	}

	// Member order is preserved, items[i] belongs to members[i]
	for i, member := range members {
		out.Items = append(out.Items, batch.CommittedItem{
			Key: member.Key,
			Id:  items[i].Id.String(),
		})
	}

	self.monitor.Report.Batch.State.BatchesCommitted.Inc()
	self.monitor.Report.Batch.State.MembersCommitted.Add(uint64(len(members)))

	return
}
