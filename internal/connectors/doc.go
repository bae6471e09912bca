// Package connectors provides sources that feed uploaded files into
// plagscan. Each connector knows how to enumerate documents from one kind
// of location (currently the local filesystem).
package connectors
