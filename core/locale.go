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

package core

import (
	"fmt"
	"strings"
)

// Locale identifies one of the supported user languages.
type Locale int

const (
	// LocaleEnglish is English, also the working language of the embedding model.
	LocaleEnglish Locale = iota + 1
	// LocaleTelugu is Telugu.
	LocaleTelugu
	// LocaleHindi is Hindi.
	LocaleHindi
)

// Locales lists every supported locale in display order.
var Locales = []Locale{LocaleEnglish, LocaleTelugu, LocaleHindi}

type localeInfo struct {
	code  string
	label string
	name  string
}

var localeTable = map[Locale]localeInfo{
	LocaleEnglish: {code: "en", label: "English", name: "English"},
	LocaleTelugu:  {code: "te", label: "తెలుగు", name: "Telugu"},
	LocaleHindi:   {code: "hi", label: "हिन्दी", name: "Hindi"},
}

// Code returns the ISO 639-1 code of the locale.
func (l Locale) Code() string {
	return localeTable[l].code
}

// Label returns the locale name written in its own script.
func (l Locale) Label() string {
	return localeTable[l].label
}

// Name returns the English name of the language.
func (l Locale) Name() string {
	return localeTable[l].name
}

// String implements fmt.Stringer.
func (l Locale) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Locale(%d)", int(l))
	}
	return l.Code()
}

// Valid reports whether l is one of the supported locales.
func (l Locale) Valid() bool {
	_, ok := localeTable[l]
	return ok
}

// ParseLocale resolves an ISO code, English name or native label to a Locale.
// An empty string resolves to English.
func ParseLocale(s string) (Locale, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return LocaleEnglish, nil
	}
	for _, l := range Locales {
		info := localeTable[l]
		if strings.EqualFold(s, info.code) || strings.EqualFold(s, info.name) || s == info.label {
			return l, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidLocale, s)
}

// LocalizedText is a table of texts keyed by locale.
type LocalizedText map[Locale]string

// For returns the text for l, falling back to English.
func (t LocalizedText) For(l Locale) string {
	if s, ok := t[l]; ok {
		return s
	}
	return t[LocaleEnglish]
}
