// Package retry provides exponential backoff retry for calling layers.
//
// The Vault client never retries on its own. Callers that want retries wrap
// an operation with Do and decide which errors qualify:
//
//	err := retry.Do(ctx, cfg, func(ctx context.Context) error {
//		entry, err = client.GetSecret(ctx, key)
//		return err
//	}, &retry.Options{ShouldRetry: vault.IsRetryable})
package retry
