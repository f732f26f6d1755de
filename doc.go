// Package mixmaster is the mixing and mastering engine behind the Mix &
// Master tool: a fixed low shelf, mid peak, high shelf and gain chain that
// runs either offline, to produce an export, or in real time, to monitor the
// same settings through an output device.
//
// # Signal chain
//
// Every render uses the same topology:
//
//	source → low shelf (200 Hz) → mid peak (1 kHz, Q 1) → high shelf (3 kHz) → gain → sink
//
// The three filters follow the Web Audio BiquadFilterNode definitions. At
// 0 dB a filter is transparent to within rounding, and unity gain leaves
// the signal untouched.
//
// # Offline rendering
//
//	out, err := mixmaster.RenderOffline(buf, mixmaster.Params{Gain: 1.2, LowEQ: 3})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	wav := mixmaster.EncodeWAV(out)
//
// Each call owns a private graph, so renders may run concurrently with each
// other and with a Monitor.
//
// # Monitoring
//
// A [Monitor] holds one real-time graph bound to a [Device]. It moves between
// [StateIdle], [StateLoaded] and [StatePlaying]; parameter changes reach the
// running chain at the next 128-frame render quantum without interrupting
// playback.
//
//	m := mixmaster.NewMonitor(device, mixmaster.WithSessionRate(48000))
//	defer m.Close()
//	if err := m.Load(ctx, "song.wav"); err != nil {
//	    return err
//	}
//	_ = m.Play()
//	_ = m.SetHighEQ(4)
//
// # Export
//
// [EncodeWAV] writes canonical 16-bit PCM WAV. [Exporter] strings the export
// steps together: render, consult the [ExportGate], encode, then hand the
// bytes to a [Saver].
package mixmaster
