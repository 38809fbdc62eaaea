// Package sim provides the Monte Carlo convergence and scheduling engine for
// BER/PER sweeps.
//
// # Reading Guide
//
// Start with these three files to understand the engine:
//   - trial.go: TrialLoop, the per-configuration convergence loop
//   - sweep.go: SweepScheduler, batched Eb/N0 scheduling with early termination
//   - campaign.go: Campaign, the multi-MCS invocation surface
//
// # Architecture
//
// The sim package defines data types and collaborator interfaces; implementations
// live in sub-packages:
//   - sim/seqcache/: pre-generated transmit sequence stores (directory, LevelDB, LRU)
//   - sim/resultlog/: per-configuration CSV metric tables and YAML metadata
//   - sim/phy/: reference receive-chain collaborators and sequence generation
//   - sim/trace/: per-batch scheduling decision records
//
// # Key Interfaces
//
//   - SequenceStore: read-only lookup of SequenceRecord by (MCS, trial index)
//   - Receiver: one transmit waveform in, recovered payload bits out
//   - Channel, Demapper, Decoder, Descrambler: the stages composed by Chain
//   - ResultSink: persists a finished configuration's rows and metadata
//
// Workers never share mutable state. The only shared collaborator is the
// SequenceStore, which must tolerate concurrent readers.
package sim
