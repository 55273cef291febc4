package repository

import (
	"encoding/json"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// Genres and credit lists live in JSON columns.

func encodeStrings(v []string) ([]byte, error) {
	if v == nil {
		v = []string{}
	}
	return json.Marshal(v)
}

func decodeStrings(b []byte) ([]string, error) {
	out := []string{}
	if len(b) == 0 {
		return out, nil
	}
	err := json.Unmarshal(b, &out)
	return out, err
}

// encodeCredits drops populated person details; only references are stored.
func encodeCredits(v []model.Credit) ([]byte, error) {
	stored := make([]model.Credit, 0, len(v))
	for _, c := range v {
		stored = append(stored, model.Credit{PersonID: c.PersonID, Role: c.Role})
	}
	return json.Marshal(stored)
}

func decodeCredits(b []byte) ([]model.Credit, error) {
	out := []model.Credit{}
	if len(b) == 0 {
		return out, nil
	}
	err := json.Unmarshal(b, &out)
	return out, err
}
