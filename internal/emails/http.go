package emails

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/artisanmarket/storefront/pkg/emailfn"
)

const requestBodyLimit int64 = 1 << 20

// ServeHTTP exposes the function over HTTP with the same JSON contract the
// remote emailfn.Client speaks.
func (s *Sender) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeResult(w, failure(http.StatusMethodNotAllowed, msgMethodNotAllowed, ""))
		return
	}

	var req emailfn.Request
	dec := json.NewDecoder(io.LimitReader(r.Body, requestBodyLimit))
	if err := dec.Decode(&req); err != nil {
		writeResult(w, failure(http.StatusBadRequest, msgMissingFields, err.Error()))
		return
	}
	writeResult(w, s.Handle(r.Context(), req))
}

func writeResult(w http.ResponseWriter, res Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.Status)
	_ = json.NewEncoder(w).Encode(res.Response)
}
