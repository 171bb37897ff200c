package native

// PerfstatFlags is the option value for every perfstat candidate.
const PerfstatFlags = MemberGlobalLazy

// Perfstat returns the AIX performance-statistics capability. The 64-bit
// archive member is preferred; older releases only ship shr.o. Each call
// returns a fresh value.
func Perfstat() Capability {
	return Capability{
		Name: "perfstat",
		Candidates: []Candidate{
			{Image: "/usr/lib/libperfstat.a(shr_64.o)", Flags: PerfstatFlags},
			{Image: "/usr/lib/libperfstat.a(shr.o)", Flags: PerfstatFlags},
		},
		Symbols: []string{
			"perfstat_cpu_total",
			"perfstat_cpu",
			"perfstat_memory_total",
			"perfstat_disk",
			"perfstat_netinterface",
			"perfstat_partition_total",
			"perfstat_process",
		},
	}
}

// Capabilities returns the known capabilities.
func Capabilities() []Capability {
	return []Capability{Perfstat()}
}

// Lookup returns the known capability with the given name.
func Lookup(name string) (Capability, bool) {
	for _, c := range Capabilities() {
		if c.Name == name {
			return c, true
		}
	}
	return Capability{}, false
}
