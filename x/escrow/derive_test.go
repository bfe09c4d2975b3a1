package escrow

import (
	"context"
	"testing"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/weavetest"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDerive(t *testing.T) {
	Convey("Given a maker", t, func() {
		maker := weavetest.NewCondition().Address()

		Convey("derivation is deterministic", func() {
			a, err := Derive(maker, 7)
			So(err, ShouldBeNil)
			b, err := Derive(maker, 7)
			So(err, ShouldBeNil)
			So(a.Record, ShouldResemble, b.Record)
			So(a.VaultAddress(), ShouldResemble, b.VaultAddress())
			So(a.RecordBump, ShouldEqual, b.RecordBump)
			So(a.VaultBump, ShouldEqual, b.VaultBump)
		})

		Convey("record and vault are distinct program addresses", func() {
			d, err := Derive(maker, 1)
			So(err, ShouldBeNil)
			So(d.Record.Equals(d.VaultAddress()), ShouldBeFalse)
			So(barter.IsProgramAddress(d.Vault), ShouldBeTrue)
		})

		Convey("every deal id and maker gets its own record", func() {
			seen := make(map[string]bool)
			for id := uint64(0); id < 32; id++ {
				d, err := Derive(maker, id)
				So(err, ShouldBeNil)
				So(seen[string(d.Record)], ShouldBeFalse)
				seen[string(d.Record)] = true
			}
			other, err := Derive(weavetest.NewCondition().Address(), 0)
			So(err, ShouldBeNil)
			So(seen[string(other.Record)], ShouldBeFalse)
		})

		Convey("stored bumps reproduce the addresses", func() {
			d, err := Derive(maker, 42)
			So(err, ShouldBeNil)
			e := &Escrow{Maker: maker, DealID: 42, EscrowBump: d.RecordBump, VaultBump: d.VaultBump}
			r, err := Rederive(e)
			So(err, ShouldBeNil)
			So(r.Record, ShouldResemble, d.Record)
			So(r.Vault.Equals(d.Vault), ShouldBeTrue)
		})

		Convey("an invalid maker is rejected", func() {
			_, err := Derive(barter.Address("short"), 1)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestVaultAuthority(t *testing.T) {
	d, err := Derive(weavetest.NewCondition().Address(), 3)
	if err != nil {
		t.Fatalf("derive: %s", err)
	}
	a := authorityOf(d)
	if !a.HasAddress(context.Background(), d.VaultAddress()) {
		t.Fatal("authority must control its vault")
	}
	if a.HasAddress(context.Background(), d.Record) {
		t.Fatal("authority must not control the record address")
	}
	if len(a.GetConditions(context.Background())) != 1 {
		t.Fatal("authority must reveal exactly the vault condition")
	}
}
