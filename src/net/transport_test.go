package net

import (
	"reflect"
	"testing"
	"time"

	"github.com/gridsim/simnode/src/common"
)

const (
	INMEM = iota
	TCP
	numTestTransports // NOTE: must be last
)

func NewTestTransport(ttype int, addr string, t *testing.T) Transport {
	switch ttype {
	case INMEM:
		_, it := NewInmemTransport(addr)
		return it
	case TCP:
		tt, err := NewTCPTransport(addr, "", 2, time.Second, common.NewTestEntry(t))
		if err != nil {
			t.Fatal(err)
		}
		go tt.Listen()
		return tt
	default:
		panic("Unknown transport type")
	}
}

func TestTransport_StartStop(t *testing.T) {
	for ttype := 0; ttype < numTestTransports; ttype++ {
		trans := NewTestTransport(ttype, "127.0.0.1:0", t)
		if err := trans.Close(); err != nil {
			t.Fatalf("err: %v", err)
		}
	}
}

func TestTransport_Input(t *testing.T) {
	addr1 := "127.0.0.1:1756"
	addr2 := "127.0.0.1:1757"
	for ttype := 0; ttype < numTestTransports; ttype++ {
		trans1 := NewTestTransport(ttype, addr1, t)
		defer trans1.Close()
		rpcCh := trans1.Consumer()

		// Make the RPC request
		args := InputRequest{
			FromID:    "P1",
			Epoch:     3,
			Value:     4.5,
			MessageID: "P1-1",
		}
		expResp := InputResponse{
			FromID:   "Grid",
			Accepted: true,
		}

		// Listen for a request
		go func() {
			select {
			case rpc := <-rpcCh:
				// Verify the command
				req := rpc.Command.(*InputRequest)
				if !reflect.DeepEqual(req, &args) {
					t.Errorf("command mismatch: %#v %#v", *req, args)
				}
				rpc.Respond(&expResp, nil)

			case <-time.After(200 * time.Millisecond):
				t.Errorf("timeout")
			}
		}()

		// Transport 2 makes outbound request
		trans2 := NewTestTransport(ttype, addr2, t)
		defer trans2.Close()

		if ttype == INMEM {
			itrans1 := trans1.(*InmemTransport)
			itrans2 := trans2.(*InmemTransport)
			itrans1.Connect(addr2, trans2)
			itrans2.Connect(addr1, trans1)
		}

		var resp InputResponse
		target := trans1.LocalAddr()
		if ttype == INMEM {
			target = addr1
		}
		if err := trans2.Input(target, &args, &resp); err != nil {
			t.Fatalf("err: %v", err)
		}

		// Verify the response
		if !reflect.DeepEqual(expResp, resp) {
			t.Fatalf("response mismatch: %#v %#v", expResp, resp)
		}
	}
}

func TestTransport_Epoch(t *testing.T) {
	addr1 := "127.0.0.1:1758"
	addr2 := "127.0.0.1:1759"
	for ttype := 0; ttype < numTestTransports; ttype++ {
		trans1 := NewTestTransport(ttype, addr1, t)
		defer trans1.Close()
		rpcCh := trans1.Consumer()

		args := EpochRequest{
			FromID:    "Manager",
			Epoch:     1,
			MessageID: "Manager-1",
		}
		expResp := EpochResponse{
			FromID:   "Grid",
			Accepted: true,
		}

		go func() {
			select {
			case rpc := <-rpcCh:
				req := rpc.Command.(*EpochRequest)
				if !reflect.DeepEqual(req, &args) {
					t.Errorf("command mismatch: %#v %#v", *req, args)
				}
				rpc.Respond(&expResp, nil)

			case <-time.After(200 * time.Millisecond):
				t.Errorf("timeout")
			}
		}()

		trans2 := NewTestTransport(ttype, addr2, t)
		defer trans2.Close()

		if ttype == INMEM {
			itrans1 := trans1.(*InmemTransport)
			itrans2 := trans2.(*InmemTransport)
			itrans1.Connect(addr2, trans2)
			itrans2.Connect(addr1, trans1)
		}

		var resp EpochResponse
		target := trans1.LocalAddr()
		if ttype == INMEM {
			target = addr1
		}
		if err := trans2.Epoch(target, &args, &resp); err != nil {
			t.Fatalf("err: %v", err)
		}

		if !reflect.DeepEqual(expResp, resp) {
			t.Fatalf("response mismatch: %#v %#v", expResp, resp)
		}
	}
}
