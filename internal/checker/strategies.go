package checker

import (
	"time"

	"github.com/nexbridge/adaptersentry/pkg/logger"
	"github.com/nexbridge/adaptersentry/pkg/types"
)

// NewDefaultDispatcher wires the full protocol strategy set. Adding a
// protocol means registering another strategy here; the dispatch path never
// changes.
func NewDefaultDispatcher(timeout time.Duration, redisDefaults types.RedisConfig, pools PoolTracker, parentLogger *logger.Entry) *Dispatcher {
	generic := NewGenericCheck(pools)
	d := NewDispatcher(timeout, generic.Check, parentLogger)

	d.Register(types.ProtocolHTTP, NewHTTPCheck().Check)
	d.Register(types.ProtocolDatabase, NewDatabaseCheck(pools).Check)
	d.Register(types.ProtocolFilesystem, NewFilesystemCheck().Check)
	d.Register(types.ProtocolFTP, NewFTPCheck(pools).Check)
	d.Register(types.ProtocolSFTP, NewSFTPCheck(pools).Check)
	d.Register(types.ProtocolMessageQueue, NewQueueCheck(redisDefaults).Check)
	d.Register(types.ProtocolSOAP, NewSOAPCheck().Check)
	d.Register(types.ProtocolGeneric, generic.Check)

	return d
}
