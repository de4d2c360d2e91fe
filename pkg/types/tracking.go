package types

import "time"

type WaterEntry struct {
	ID       string    `json:"id"`
	AmountMl float64   `json:"amount"`
	Date     time.Time `json:"date"`
}

type WeightEntry struct {
	ID     string    `json:"id"`
	Weight float64   `json:"weight"`
	Date   time.Time `json:"date"`
}
