// Package classifier converts raw user input into a typed core.Intent.
//
// Classification is two-tier: ServiceClassifier sends a structured JSON
// prompt through the completion service and parses the reply; any completion
// failure or malformed output falls back to Heuristic, a regex-weighted
// keyword classifier that always produces a result. The fallback is the
// liveness guarantee of the routing layer: classification can degrade but
// never fail or block indefinitely.
package classifier
