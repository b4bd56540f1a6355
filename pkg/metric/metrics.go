package metric

import (
	"net/http"
	"time"
)

type (
	Factory interface {
		HTTP() HTTP
		Transaction() Transaction
		Outbox() Outbox
		Cache() Cache
		Handler() http.Handler
	}

	HTTP interface {
		Request(method, path string, status int, duration time.Duration)
		SlowRequest(method, path string, status int, duration time.Duration)
	}

	Transaction interface {
		ObserveDuration(operation string, duration time.Duration)
		IncrementRetries(operation string)
		IncrementFailures(operation string)
	}

	Outbox interface {
		Published(kind string)
		Failed(kind string, reason string)
		Dead(kind string)
		Pending(count int64)
	}

	Cache interface {
		Hit(cacheType string)
		Miss(cacheType string)
		Eviction(cacheType string, reason string)
		Size(cacheType string, size int)
	}
)
