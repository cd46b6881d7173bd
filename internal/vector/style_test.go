/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package vector

import (
	"math/rand"
	"testing"
)

func TestColorHexRoundTrip(t *testing.T) {
	c, err := ParseHex("#00a1ff")
	if err != nil {
		t.Fatalf("ParseHex error: %v", err)
	}
	if c != GuideBlue {
		t.Fatalf("expected guide blue, got %+v", c)
	}
	if c.Hex() != "#00a1ff" {
		t.Fatalf("Hex() = %q", c.Hex())
	}
	short, err := ParseHex("fff")
	if err != nil || short != White {
		t.Fatalf("short form: %+v err=%v", short, err)
	}
	if _, err := ParseHex("#12"); err == nil {
		t.Fatalf("expected error for bad length")
	}
}

func TestRandomColorDeterministicWithSeed(t *testing.T) {
	a := RandomColor(rand.New(rand.NewSource(7)))
	b := RandomColor(rand.New(rand.NewSource(7)))
	if a != b || a.A != 255 {
		t.Fatalf("seeded colors differ or not opaque: %+v %+v", a, b)
	}
}
