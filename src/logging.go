package wxsame

import "github.com/charmbracelet/log"

/*------------------------------------------------------------------
 *
 * Purpose:	The core's only two logging call sites: a listener panic
 *		caught in the cache's dispatch path, and a debug note
 *		when reconciliation has to proceed without a known
 *		transmitter's reference data.
 *
 *------------------------------------------------------------------*/

// Logger is the package-level logger used by MessageCache and the
// header averager. Replace it (e.g. with a logger scoped to a request
// or a test) before constructing a cache if the default isn't wanted.
var Logger = log.Default()

func logListenerPanic(recovered any) {
	Logger.Error("score listener panicked, dropping this notification", "panic", recovered)
}

func logUnknownTransmitter(transmitter string) {
	Logger.Debug("no reference data for transmitter, reconciling without it", "transmitter", transmitter)
}
