// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package notify decides when a project has broken or been fixed and
// delivers the resulting alerts.
//
// Diff compares two consecutive trees by record ID. A project breaks
// when it moves from a passing status (Succeeded or NotBuilt) to a
// failing one (Failed, Unstable or Aborted) and is fixed when it moves
// back. Only projects selected by the Matcher produce events; a nil
// Matcher selects nothing.
//
// Notifiers deliver events. LogNotifier writes them to a structured
// log, DesktopNotifier raises a desktop notification, and Multi fans
// out to several.
package notify
