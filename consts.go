package tracing

const (
	// ServiceName is the DI/service locator name for the tracing service.
	ServiceName = "TraceService"
	emptyString = ""
)

const (
	// sysTopicPrefix marks internal control traffic. Publishes on topics under
	// it are never trace-eligible, whatever sessions are active.
	sysTopicPrefix = "$SYS"

	sinkPrefixClientID = "clientid_"
	sinkPrefixTopic    = "topic_"
)

const (
	errMsgNilConfig       = "Tracing config is nil."
	errMsgNilService      = "Tracing service is nil."
	errMsgNotInitialized  = "Tracing service is not initialized."
	errMsgLoggerNotSet    = "Operational logger has not been set/injected."
	errMsgConfigInvalid   = "Tracing configuration is invalid."
	errMsgBadSelectorKind = "Selector kind is not recognized."
	errMsgEmptySelector   = "Selector value is empty."
)
