package ant_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/arap/ant"
	"github.com/sarchlab/arap/sim/idgen"
	"github.com/sarchlab/arap/sim/timing"
)

type fixedClock struct {
	now timing.VTimeInSec
}

func (c *fixedClock) Now() timing.VTimeInSec {
	return c.now
}

func addr(i byte) ant.Address {
	return ant.AddressFrom4(10, 1, 1, i)
}

var _ = Describe("Codec", func() {
	var (
		clock *fixedClock
		ids   idgen.Generator
		codec *ant.Codec
	)

	BeforeEach(func() {
		clock = &fixedClock{now: 1.5}
		ids = idgen.New()

		var err error
		codec, err = ant.NewCodec(128, ids, clock)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should reject small capacities", func() {
		_, err := ant.NewCodec(64, ids, clock)
		Expect(err).To(MatchError(ant.ErrInvalidCapacity))
	})

	DescribeTable("load ants survive layer peeling",
		func(hops int, message string) {
			path := make([]ant.Address, hops)
			for i := range path {
				path[i] = addr(byte(i + 2))
			}

			id, buf, err := codec.EncodeLoad(path, []byte(message))
			Expect(err).NotTo(HaveOccurred())
			Expect(buf).To(HaveLen(128))

			for i := 0; i < hops-1; i++ {
				nodeType, err := ant.ReadNodeType(buf)
				Expect(err).NotTo(HaveOccurred())
				Expect(nodeType).To(Equal(ant.NodeTypeMedium))

				next, err := ant.ReadNextHop(buf)
				Expect(err).NotTo(HaveOccurred())
				Expect(next).To(Equal(path[i+1]))

				layerID, _ := ant.ReadAntID(buf)
				Expect(layerID).To(Equal(id))

				remaining, _ := ant.ReadLayerSize(buf)
				Expect(int(remaining)).To(Equal(
					ant.LoadSize(hops-i-1, len(message))))

				buf, err = ant.AdvanceLayer(buf)
				Expect(err).NotTo(HaveOccurred())
			}

			final, err := ant.DecodeFinal(buf)
			Expect(err).NotTo(HaveOccurred())
			Expect(final.AntID).To(Equal(id))
			Expect(final.Type).To(Equal(ant.TypeLoad))
			Expect(final.SendTime).To(Equal(uint64(1500000000)))
			Expect(final.Target).To(Equal(path[hops-1]))
			Expect(string(final.Message)).To(Equal(message))
		},
		Entry("two hops", 2, "hello"),
		Entry("three hops", 3, "a longer message body"),
		Entry("four hops, empty message", 4, ""),
	)

	It("should zero-fill the unused bytes", func() {
		path := []ant.Address{addr(2), addr(4)}
		_, buf, err := codec.EncodeLoad(path, []byte("msg"))
		Expect(err).NotTo(HaveOccurred())

		used := ant.LoadSize(2, 3)
		Expect(bytes.Count(buf[used:], []byte{0})).To(Equal(128 - used))

		advanced, err := ant.AdvanceLayer(buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(advanced).To(HaveLen(128))
		tail := advanced[128-ant.MediumHeaderSize:]
		Expect(tail).To(Equal(make([]byte, ant.MediumHeaderSize)))
	})

	It("should not modify the input when advancing a layer", func() {
		_, buf, _ := codec.EncodeExplorer(addr(3))
		before := append([]byte(nil), buf...)

		_, err := ant.AdvanceLayer(buf)

		Expect(err).NotTo(HaveOccurred())
		Expect(buf).To(Equal(before))
	})

	It("should fail before drawing an ID when a load ant overflows", func() {
		path := []ant.Address{addr(2), addr(3), addr(4)}
		message := make([]byte, 128)

		_, buf, err := codec.EncodeLoad(path, message)

		Expect(err).To(MatchError(ant.ErrEncodingOverflow))
		Expect(buf).To(BeNil())
		Expect(ids.Count()).To(BeZero())
	})

	It("should accept a load ant that exactly fills the packet", func() {
		path := []ant.Address{addr(2), addr(3)}
		message := make([]byte, 128-ant.LoadSize(2, 0))

		_, buf, err := codec.EncodeLoad(path, message)

		Expect(err).NotTo(HaveOccurred())
		Expect(buf).To(HaveLen(128))
	})

	It("should reject an empty path", func() {
		_, _, err := codec.EncodeLoad(nil, []byte("x"))
		Expect(err).To(MatchError(ant.ErrInvalidPath))
	})

	It("should encode explorer ants with two layers", func() {
		id, buf, err := codec.EncodeExplorer(addr(4))
		Expect(err).NotTo(HaveOccurred())

		nodeType, _ := ant.ReadNodeType(buf)
		Expect(nodeType).To(Equal(ant.NodeTypeMedium))
		next, _ := ant.ReadNextHop(buf)
		Expect(next).To(Equal(addr(4)))

		buf, _ = ant.AdvanceLayer(buf)
		final, err := ant.DecodeFinal(buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(final.AntID).To(Equal(id))
		Expect(final.Type).To(Equal(ant.TypeExplorer))
		Expect(final.Target).To(Equal(addr(4)))
		Expect(final.Message).To(BeNil())
		Expect(ant.TimeOfSendTime(final.SendTime)).To(
			BeNumerically("~", 1.5, 1e-9))
	})

	It("should hand out increasing IDs across ant kinds", func() {
		var got []idgen.ID
		for i := 0; i < 10; i++ {
			var (
				id  idgen.ID
				err error
			)

			if i%2 == 0 {
				id, _, err = codec.EncodeExplorer(addr(3))
			} else {
				id, _, err = codec.EncodeLoad(
					[]ant.Address{addr(2), addr(3)}, []byte("m"))
			}

			Expect(err).NotTo(HaveOccurred())
			got = append(got, id)
		}

		for i := 1; i < len(got); i++ {
			Expect(got[i]).To(BeNumerically(">", got[i-1]))
		}
	})

	It("should encode answers as a single final layer", func() {
		buf, err := codec.EncodeAnswer(42, addr(4), 7, []byte("ack"))
		Expect(err).NotTo(HaveOccurred())

		final, err := ant.DecodeFinal(buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(final).To(Equal(ant.Final{
			AntID:    7,
			Type:     ant.TypeLoad,
			SendTime: 42,
			Target:   addr(4),
			Message:  []byte("ack"),
		}))
		Expect(ids.Count()).To(BeZero())
	})

	It("should reject answers that overflow", func() {
		_, err := codec.EncodeAnswer(0, addr(4), 1, make([]byte, 200))
		Expect(err).To(MatchError(ant.ErrEncodingOverflow))
	})
})

var _ = Describe("Readers", func() {
	It("should report truncated packets", func() {
		_, err := ant.ReadTarget(make([]byte, 10))
		Expect(err).To(MatchError(ant.ErrTruncated))

		_, err = ant.AdvanceLayer(make([]byte, 3))
		Expect(err).To(MatchError(ant.ErrTruncated))
	})

	It("should reject message lengths beyond the packet", func() {
		clock := &fixedClock{}
		codec, _ := ant.NewCodec(128, idgen.New(), clock)
		buf, _ := codec.EncodeAnswer(0, addr(2), 1, []byte("ok"))
		buf[ant.FinalHeaderSize+ant.TypeSize+ant.SendTimeSize+ant.AddressSize] = 0xff

		_, err := ant.ReadMessage(buf)
		Expect(err).To(MatchError(ant.ErrTruncated))
	})

	It("should reject unknown tags", func() {
		buf := make([]byte, 128)
		copy(buf[ant.IDSize:], "XXXXX")

		nodeType, err := ant.ReadNodeType(buf)
		Expect(nodeType).To(Equal(ant.NodeTypeUnknown))
		Expect(err).To(MatchError(ant.ErrUnknownTag))
	})
})

var _ = Describe("Address", func() {
	It("should print and parse dotted quads", func() {
		a, err := ant.ParseAddress("10.1.1.3")
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(Equal(addr(3)))
		Expect(a.String()).To(Equal("10.1.1.3"))

		_, err = ant.ParseAddress("not-an-ip")
		Expect(err).To(HaveOccurred())
	})
})
