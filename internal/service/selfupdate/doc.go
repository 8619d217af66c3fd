// Package selfupdate replaces the running ghpm binary with the asset of the
// latest ghpm release built for the current platform.
//
// It reuses the program lifecycle pieces: the catalog client finds the
// release, the selector picks the "<name>_<goos>_<goarch>" asset, the
// downloader stores it and go-update swaps it in place.
package selfupdate
