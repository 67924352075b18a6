// Package features turns raw dataset tables into feature matrices.
//
// Prepare is used for training: it drops rows whose target is missing,
// encodes the remaining rows and splits them into a train and a test part with
// a seeded permutation. Build is used for prediction and shares the encoding
// code path of Prepare, driven by the FeatureSchema stored with a model.
//
// The feature layout is the numeric fields in their configured order followed
// by one 0/1 indicator per configured category. Category values are
// canonicalised first ("1.0" matches category "1"); values outside the list,
// and missing values, encode as all zeros.
package features
