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

// ValidateSchemeRow validates a reference row according to domain rules.
//
// Validation rules:
//   - Name must not be blank
//   - Description must not be blank (it is the answer returned to users)
//
// NOT validated:
//   - Eligibility and Benefits (blank cells are kept as empty strings)
func ValidateSchemeRow(row SchemeRow) error {
	if strings.TrimSpace(row.Name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidSchemeRow)
	}
	if strings.TrimSpace(row.Description) == "" {
		return fmt.Errorf("%w: description is empty for %q", ErrInvalidSchemeRow, row.Name)
	}
	return nil
}

// ValidateQuestion returns ErrEmptyQuery if the question is empty or only whitespace.
func ValidateQuestion(question string) error {
	if strings.TrimSpace(question) == "" {
		return ErrEmptyQuery
	}
	return nil
}
