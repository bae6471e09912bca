// Package extractors turns uploaded files into plain UTF-8 text.
// Each subpackage handles one format; Registry picks one by file extension.
package extractors
