// Package mlp implements the standardised feed-forward regressor tuned by the
// genetic search.
//
// A Pipeline chains a StandardScaler (zero mean, unit population variance per
// column, fitted on the training data only) with a Regressor: one ReLU hidden
// layer, identity output, squared-error loss with L2 penalty, trained with adam
// on shuffled mini-batches. Training stops after MaxIter epochs, or earlier when
// the epoch loss has not improved by Tol for NIterNoChange consecutive epochs.
// Hitting MaxIter is reported through FitInfo.Converged, never as an error.
//
// All randomness (weight initialisation and batch shuffling) comes from Seed, so
// fitting the same data with the same parameters is reproducible bit for bit.
//
// Pipelines serialise to an opaque binary blob with MarshalBinary; the blob
// embeds the feature schema, which UnmarshalBinary validates.
package mlp
