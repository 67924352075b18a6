/*
Copyright 2025 The vbwear Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package collector

import "context"

// Source loads one dataset.
type Source interface {
	// Name is a human-readable location of the dataset.
	Name() string
	// Load reads the whole dataset.
	Load(ctx context.Context) (*Table, error)
}

// SourceType enumerates the supported dataset formats.
type SourceType string

const (
	SourceTypeCSV    SourceType = "csv"
	SourceTypeXLSX   SourceType = "xlsx"
	SourceTypeSQLite SourceType = "sqlite"
)
