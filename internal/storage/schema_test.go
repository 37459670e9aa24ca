/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"os"
	"testing"
)

func TestManifestConformsToSchema(t *testing.T) {
	root := t.TempDir()
	h, err := InitLayout(root, NewDocument("Schema Test", 3, PageSize{Width: 595, Height: 842}))
	if err != nil {
		t.Fatalf("InitLayout error: %v", err)
	}
	data, err := os.ReadFile(h.ManifestPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if err := ValidateManifest(data); err != nil {
		t.Fatalf("manifest does not conform: %v", err)
	}
	if err := ValidateLayout(root); err != nil {
		t.Fatalf("ValidateLayout: %v", err)
	}
}

func TestSchemaRejectsBrokenManifest(t *testing.T) {
	bad := []byte(`{"name": "", "version": 0, "pageSize": {"width": 0, "height": 10}, "objects": [{"id": ""}], "snapping": {}}`)
	err := ValidateManifest(bad)
	if !errors.Is(err, ErrInvalidManifest) {
		t.Fatalf("expected ErrInvalidManifest, got %v", err)
	}
}
