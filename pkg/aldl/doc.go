// Package aldl decodes the ALDL diagnostic line of 1980s GM engine
// controllers and derives fuel consumption from successive messages.
//
// The line carries no UART framing. Each bit occupies a fixed period and
// its value is carried by how long the line is held low within that
// period. The pipeline is:
//
//	Sampler -> SymbolQueue -> Scheduler (FindFrame, Decode, FuelRate) -> Sink
//
// The Sampler runs on its own goroutine and only samples while armed by
// the Scheduler, which is the sole consumer of the queue.
package aldl
