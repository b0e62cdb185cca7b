// Package review implements the operator's edits on an ingested subject:
// day flags, manual sleep intervals and the finished mark.
package review
