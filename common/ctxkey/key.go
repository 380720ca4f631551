package ctxkey

const (
	// RequestId is a per-request unique identifier stamped by middleware.RequestId.
	RequestId = "X-Request-Id"

	// AccountId is the resolved quota-bearing account identifier (the access code).
	// Set in: middleware.RelayAuth for account deployments.
	// Read in: relay/controller for charge application and audit logging.
	AccountId = "account_id"

	// BringYourOwnKey marks requests authenticated with a caller-supplied vendor
	// token. Such requests bypass the quota evaluator and are never charged.
	BringYourOwnKey = "byok"

	// RequestModel is the canonical model identifier resolved from the request.
	RequestModel = "request_model"
)
