// Package tokensource provides backend credentials as oauth2.TokenSource
// values, so the HTTP client authenticates through the standard
// oauth2.Transport chain regardless of where the key came from.
//
// Two sources exist: a static API key (FromAPIKey, typically fed from an
// environment variable) and the OS keyring (FromKeyring), populated by the
// CLI's auth commands via Store and Clear.
package tokensource
