package dto

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string       `json:"error"`
	Stock *StockDetail `json:"stock,omitempty"`
}

// StockDetail explains which product could not be reserved.
type StockDetail struct {
	ProductID int64 `json:"product_id"`
	Requested int   `json:"requested"`
	Available int   `json:"available"`
}
