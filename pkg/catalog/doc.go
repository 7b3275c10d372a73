// Package catalog provides the lesson catalog domain: Categories that own
// Lessons and Series, and Series that own SeriesLessons.
//
// The Service enforces the cross-entity rules (parent existence on create,
// cascading deletes inside a single store transaction, immutable identity and
// parent keys) on top of a pluggable Store. Store implementations live under
// repo/ (memory, PostgreSQL, GORM, SurrealDB) and blob stores for cover image
// uploads live under storage/ (memory, filesystem, S3).
//
// Cascades
//
// Deleting a Category removes every Lesson, Series and SeriesLesson whose
// categoryId matches, then the Category, atomically. Deleting a Series removes
// the SeriesLessons selected by the configured SeriesCascade key. The default,
// SeriesCascadeByCategoryKey, selects SeriesLessons whose categoryId equals the
// Series id, which is how existing deployments behave; SeriesCascadeBySeriesKey
// selects them by seriesId instead.
//
// Uploads
//
// Uploads stores cover images under a content-addressed name: the unpadded
// URL-safe base64 SHA-256 digest of the bytes followed by the original file
// extension. Identical uploads always land on the same name.
package catalog
