/*
Package observability decides whether an execution timeline is persisted and how.

A decision combines two inputs:

  - Sampling: the Bus identifier is hashed into a stable bucket in [0, 10000).
    The execution is sampled when bucket/10000 < SampleRate, so one identifier
    always samples the same way.
  - Adaptive policy: independent of sampling, a policy can force export when the
    final outcome is in its trigger set.

Exported timelines are written in one of three modes (overwrite, append, rotate),
optionally projected into public/internal artifacts and mirrored to sinks.
Every decision, exported or not, is counted by a StatsRegistry.
Export failures are logged and never reach the caller.
*/
package observability
