// Package report renders trajectory rows as a static PNG plot grid and an
// interactive HTML chart page.
//
// Undefined samples break lines instead of being drawn as zero.
package report
