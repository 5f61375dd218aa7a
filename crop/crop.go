// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package crop recommends a crop for a soil and climate sample using an
// externally hosted classifier.
package crop

import (
	"context"
	"fmt"
	"math"

	"github.com/poiesic/agrivoice/core"
)

// SoilSample holds the classifier features.
type SoilSample struct {
	N           float64 `json:"n"`
	P           float64 `json:"p"`
	K           float64 `json:"k"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	PH          float64 `json:"ph"`
	Rainfall    float64 `json:"rainfall"`
}

type featureRange struct {
	name     string
	min, max float64
}

var featureRanges = [...]featureRange{
	{"N", 0, 200},
	{"P", 0, 200},
	{"K", 0, 200},
	{"temperature", 0, 50},
	{"humidity", 0, 100},
	{"ph", 0, 14},
	{"rainfall", 0, 500},
}

// Features returns the sample in classifier order:
// N, P, K, temperature, humidity, pH, rainfall.
func (s SoilSample) Features() []float64 {
	return []float64{s.N, s.P, s.K, s.Temperature, s.Humidity, s.PH, s.Rainfall}
}

// Validate checks every feature against its accepted range.
func (s SoilSample) Validate() error {
	for i, v := range s.Features() {
		r := featureRanges[i]
		if math.IsNaN(v) || v < r.min || v > r.max {
			return fmt.Errorf("%w: %s must be between %g and %g, got %g",
				core.ErrInvalidSoilSample, r.name, r.min, r.max, v)
		}
	}
	return nil
}

// Classifier predicts the crop label for a sample.
// Implementations must be safe for concurrent use.
type Classifier interface {
	Predict(ctx context.Context, sample SoilSample) (string, error)
}

var messageTemplates = core.LocalizedText{
	core.LocaleEnglish: "Recommended crop: %s",
	core.LocaleTelugu:  "సిఫారసు చేసిన పంట: %s",
	core.LocaleHindi:   "अनुशंसित फसल: %s",
}

// Message renders the recommendation in the given locale.
func Message(crop string, locale core.Locale) string {
	return fmt.Sprintf(messageTemplates.For(locale), crop)
}
