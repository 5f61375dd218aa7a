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

// Package scheme answers farmer questions with the best matching government
// scheme description.
//
// A Matcher embeds the context of every scheme row once at load time and keeps
// the vectors in an immutable core.Corpus. A query is translated to English,
// embedded with the same model and compared against every row by cosine
// similarity. The row with the highest score wins; ties go to the row that
// appears first.
//
// # Usage
//
//	matcher, err := scheme.NewMatcher(provider, scheme.WithCache(cache))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer matcher.Release()
//
//	corpus, err := matcher.Load(ctx, rows)
//	match, err := matcher.Query(ctx, corpus, "how can I insure my crop")
//	fmt.Println(match.Description, match.Score)
//
// A Corpus is never mutated after Load, so any number of goroutines may query
// it concurrently.
package scheme
