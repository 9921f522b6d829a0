package handlers

import (
	"context"
	"net/http"
)

// Notify handles POST /api/comgate/notify.
//
// The gateway times out and retry-storms if the acknowledgment waits
// on the reconciliation work, so this handler's whole contract is:
// always answer 200 "OK" immediately, then hand the payload to the
// background dispatcher. The reconciliation outcome is never reported
// back to the gateway.
func (h *Handlers) Notify(w http.ResponseWriter, r *http.Request) {
	n := parseNotification(r)

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))

	h.logger.Info("comgate notification received",
		"ref_id", n.RefID,
		"transaction_id", n.TransactionID,
		"claimed_status", n.Status,
	)

	h.dispatcher.Submit("reconcile", func(ctx context.Context) {
		h.reconciler.Reconcile(ctx, n)
	})
}
