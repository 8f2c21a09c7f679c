package util

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// JsonWrite encodes v as the response body. Encoding errors panic and are
// turned into a 500 by the recoverer middleware.
func JsonWrite(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		panic(err)
	}
}

func GenUUID() string {
	x, err := uuid.NewRandom()
	if err != nil {
		panic(err)
	}
	return x.String()
}
