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

// Package agrivoice is a multilingual farmer assistant.
//
// An Assistant answers four kinds of questions in English, Telugu or Hindi:
// which government scheme fits a question (nearest neighbour search over
// sentence embeddings), the current weather for a place, which crop suits a
// soil sample, and how much of a treatment to apply against a pest. Answers
// can carry synthesized speech.
//
//	assistant, err := agrivoice.NewAssistant(ctx,
//	    agrivoice.WithCachePath("./agrivoice-cache"),
//	    agrivoice.WithAIConfig(ai.NewConfig()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer assistant.Close()
//
//	answer, err := assistant.AskScheme(ctx, "how do I get a crop loan", core.LocaleTelugu, false)
package agrivoice
