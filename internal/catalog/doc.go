// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package catalog holds the reference lists a shift report is keyed
// against: activities, segments, workers and supervisors.
package catalog
