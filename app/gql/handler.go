package gql

import (
	"encoding/json"
	"net/http"

	"feedboard/app/services"

	"github.com/graphql-go/graphql"
	"github.com/rs/zerolog"
)

// Handler serves GraphQL requests over HTTP POST. Authentication is
// optional at the transport: resolvers that need a caller report the
// failure themselves with a coded error.
type Handler struct {
	schema graphql.Schema
	log    zerolog.Logger
}

// NewHandler builds the schema and wraps it in an HTTP handler.
func NewHandler(feed *services.FeedService, auth *services.AuthService, log zerolog.Logger) (*Handler, error) {
	schema, err := NewSchema(feed, auth)
	if err != nil {
		return nil, err
	}
	return &Handler{schema: schema, log: log}, nil
}

type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        r.Context(),
	})

	// Per GraphQL convention errors travel in the response body, not the
	// HTTP status.
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.log.Warn().Err(err).Msg("failed to encode graphql response")
	}
}
