// Package window generates the cosine-sum windows used to frame audio
// before a transform.
package window
