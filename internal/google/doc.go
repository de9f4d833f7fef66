// Package google resolves Google API credentials for the calendar gateway.
//
// Three mutually exclusive credential schemes are supported, selected by
// which environment variables are present: a base64-encoded service-account
// key, a raw JSON service-account key, and an OAuth
// client-id/secret/refresh-token triple. Each scheme produces the same
// thing, the client options the Calendar service is constructed with, so the
// gateway never knows which scheme a deployment uses.
package google
