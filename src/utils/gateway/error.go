package gateway

import "errors"

var (
	ErrFailedToParse    = errors.New("failed to parse response")
	ErrNotFound         = errors.New("data not found")
	ErrPending          = errors.New("tx is pending")
	ErrNoHealthyGateway = errors.New("no gateway passed the liveness probe")
	ErrDataTooBigForTx  = errors.New("payload exceeds a single chunk, use the bundler path")
	ErrNoGatewayUrls    = errors.New("no gateway urls configured")
)
