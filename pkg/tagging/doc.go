// Package tagging writes ID3 tags into finished MP3 recordings and dates the
// files back to the moment their track started. Tagging runs on a worker
// pool so recording never waits for it.
package tagging
