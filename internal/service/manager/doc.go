// Package manager is the entry point behind "ghpm -i|-u|-r". It loads the
// program list and backend registry, prepares the run's collaborators and
// scratch directory, hands every program to the lifecycle orchestrator and
// prints the summary.
package manager
