// Package types defines the legacy completion-style wire types served by the
// adapter.
//
// The types are hand-written rather than generated or taken from a client
// SDK: optional fields are plain Go pointers, which work naturally with
// encoding/json and let "absent" survive a round-trip without custom
// marshaling. The adapter depends on that distinction — absent legacy fields
// must stay absent on the translated backend request.
package types
