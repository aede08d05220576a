package handlers

import "encoding/json"

type HelloResponse struct {
	Hello string `json:"hello"`
}

type SaveFormRequest struct {
	UUID *string         `json:"uuid"`
	Data json.RawMessage `json:"data" swaggertype:"object"`
}

type SaveFormResponse struct {
	UUID string `json:"uuid"`
}

type FormDataResponse struct {
	Data json.RawMessage `json:"data" swaggertype:"object"`
}

type DeleteFormResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
