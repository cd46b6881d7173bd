/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage persists boards.
// A board is a directory holding the canonical JSON manifest (board.json),
// written transactionally with timestamped backups and validated against an
// embedded JSON schema. Snapshot history lives in a per-board embedded SQLite
// database at <board>/.snapcanvas/history.sqlite, which is derived data and
// can be reset without losing the board.
package storage
