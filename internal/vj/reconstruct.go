package vj

// assemble lays out the stored headers followed by payload in one buffer.
// The caller has already set the total length and IP checksum on st.
func assemble(st *ConnectionState, payload []byte) []byte {
	out := make([]byte, 0, st.HeaderLen()+len(payload))
	out = append(out, st.IP[:]...)
	out = append(out, st.IPOptions...)
	out = append(out, st.TCP[:]...)
	out = append(out, st.TCPOptions...)
	out = append(out, payload...)
	return out
}
