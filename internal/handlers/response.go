package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jobintel/ml-gateway/internal/mlclient"
)

type errorResponse struct {
	Error             string `json:"error"`
	Message           string `json:"message"`
	RetryAfterSeconds int    `json:"retry_after_seconds,omitempty"`
}

func writeRejection(w http.ResponseWriter, rej *Rejection) {
	for name, value := range rej.Headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rej.Status)
	json.NewEncoder(w).Encode(errorResponse{
		Error:             rej.Error,
		Message:           rej.Message,
		RetryAfterSeconds: rej.RetryAfterSeconds,
	})
}

func writeResult(w http.ResponseWriter, res *mlclient.Result) {
	for name, values := range res.Relay {
		for _, value := range values {
			w.Header().Add(name, value)
		}
	}
	if res.ContentType != "" {
		w.Header().Set("Content-Type", res.ContentType)
	}
	w.WriteHeader(res.Status)
	w.Write(res.Body)
}

func writeCached(w http.ResponseWriter, data []byte, contentType string) {
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Cache", "HIT")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
