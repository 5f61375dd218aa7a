package api

import (
	"github.com/poiesic/agrivoice"
	"github.com/poiesic/agrivoice/core"
)

// SchemeQueryRequest is the body of POST /api/v1/schemes/query.
type SchemeQueryRequest struct {
	Question string `json:"question"`
	Locale   string `json:"locale"`
	Audio    bool   `json:"audio"`
}

// CropRequest is the body of POST /api/v1/crops/recommend.
type CropRequest struct {
	N           float64 `json:"n"`
	P           float64 `json:"p"`
	K           float64 `json:"k"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	PH          float64 `json:"ph"`
	Rainfall    float64 `json:"rainfall"`
	Locale      string  `json:"locale"`
	Audio       bool    `json:"audio"`
}

// DosageRequest is the body of POST /api/v1/dosage.
type DosageRequest struct {
	Pest   string  `json:"pest"`
	Area   float64 `json:"area"`
	Locale string  `json:"locale"`
	Audio  bool    `json:"audio"`
}

// MatchResponse describes the scheme an answer came from.
type MatchResponse struct {
	Name     string  `json:"name"`
	Index    int     `json:"index"`
	Score    float32 `json:"score"`
	Question string  `json:"question"`
}

// AnswerResponse is returned by every answer endpoint. Audio is base64 MP3.
type AnswerResponse struct {
	Text   string         `json:"text"`
	Locale string         `json:"locale"`
	Audio  []byte         `json:"audio,omitempty"`
	Match  *MatchResponse `json:"match,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Schemes int    `json:"schemes"`
	Model   string `json:"model"`
}

// PestsResponse is returned by GET /api/v1/pests.
type PestsResponse struct {
	Pests []string `json:"pests"`
}

func newAnswerResponse(a *agrivoice.Answer) AnswerResponse {
	resp := AnswerResponse{
		Text:   a.Text,
		Locale: a.Locale.Code(),
		Audio:  a.Audio,
	}
	if a.Match != nil {
		resp.Match = newMatchResponse(a.Match)
	}
	return resp
}

func newMatchResponse(m *core.Match) *MatchResponse {
	return &MatchResponse{
		Name:     m.Record.Name,
		Index:    m.Index,
		Score:    m.Score,
		Question: m.Question,
	}
}
