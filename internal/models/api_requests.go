package models

type CreatePredictionRequest struct {
	WinnerID   string `json:"winner_id" validate:"required,nefield=LoserID"`
	LoserID    string `json:"loser_id" validate:"required"`
	Tournament string `json:"tournament" validate:"required,max=32"`
	Day        int    `json:"day" validate:"min=1,max=15"`
}

type RecordResultRequest struct {
	ActualWinnerID string `json:"actual_winner_id" validate:"required"`
}

type PredictionQuery struct {
	Tournament string `validate:"required,max=32"`
	Day        int    `validate:"min=1,max=15"`
}

type IngestResponse struct {
	Status    string `json:"status"`
	Processed int    `json:"processed"`
	Rejected  int    `json:"rejected"`
}
