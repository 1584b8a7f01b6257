package bus

import "testing"

func TestUnattachedPortReadsZero(t *testing.T) {
	r, err := NewRegistry(Config{})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if got := r.Read(0x10); got != 0 {
		t.Fatalf("Read(unattached) = 0x%02X, want 0", got)
	}
	r.Write(0x10, 0xFF) // must not panic
}

func TestLatchRoundTrip(t *testing.T) {
	r, err := NewRegistry(Config{Ports: map[byte]DeviceKind{1: KindLatch}})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	r.Write(1, 0x01)
	if got := r.Read(1); got != 0x01 {
		t.Fatalf("Read(1) = 0x%02X, want 0x01", got)
	}
	r.Write(1, 0x00)
	if got := r.Read(1); got != 0x00 {
		t.Fatalf("Read(1) = 0x%02X, want 0x00", got)
	}
}

func TestConfigOverMaxPortsRejected(t *testing.T) {
	cfg := Config{Ports: map[byte]DeviceKind{1: KindLatch, 2: KindLatch, 3: KindLatch, 4: KindLatch, 5: KindLatch, 6: KindLatch}}
	if _, err := NewRegistry(cfg); err == nil {
		t.Fatal("expected error for 6 ports exceeding MaxPorts")
	}
}

func TestAttachDetach(t *testing.T) {
	r, err := NewRegistry(Config{})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if err := r.Attach(2, KindLatch); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if _, ok := r.Device(2); !ok {
		t.Fatal("expected device attached at port 2")
	}
	r.Detach(2)
	if _, ok := r.Device(2); ok {
		t.Fatal("expected no device attached at port 2 after Detach")
	}
}
