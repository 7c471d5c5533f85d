package intent

import (
	"errors"
	"fmt"
	"io"

	gonet "github.com/l1jgo/mobsim/internal/net"
	"github.com/l1jgo/mobsim/internal/net/packet"
	"github.com/l1jgo/mobsim/internal/world"
)

// Encode serialises an intent into a frame payload.
func Encode(in Intent, cs packet.Charset) []byte {
	w := packet.NewWriterWithOpcode(in.Opcode(), cs)
	w.WriteD(int32(in.Actor()))
	switch v := in.(type) {
	case Attack:
		w.WriteD(int32(v.TargetID))
		w.WriteD(v.X)
		w.WriteD(v.Y)
	case SkillAttack:
		w.WriteD(int32(v.TargetID))
		w.WriteD(v.SkillID)
		w.WriteD(v.X)
		w.WriteD(v.Y)
	case Move:
		w.WriteC(byte(v.Heading))
		w.WriteC(byte(v.Mode))
		w.WriteD(v.X)
		w.WriteD(v.Y)
	case Spawn:
		w.WriteD(v.TemplateID)
		w.WriteH(uint16(v.MapID))
		w.WriteD(v.X)
		w.WriteD(v.Y)
		w.WriteC(byte(v.Heading))
	case Despawn:
	case Chat:
		w.WriteS(v.Text)
	}
	return w.Bytes()
}

// FrameSink records intents as length-prefixed frames. The first write
// error is kept and later intents are dropped.
type FrameSink struct {
	w   io.Writer
	cs  packet.Charset
	err error
	n   int
}

func NewFrameSink(w io.Writer, cs packet.Charset) *FrameSink {
	return &FrameSink{w: w, cs: cs}
}

func (s *FrameSink) Emit(in Intent) {
	s.write(Encode(in, s.cs))
}

// Mark writes a tick boundary frame.
func (s *FrameSink) Mark(tick int64) {
	w := packet.NewWriterWithOpcode(OpTick, s.cs)
	w.WriteQ(tick)
	s.write(w.Bytes())
}

func (s *FrameSink) write(payload []byte) {
	if s.err != nil {
		return
	}
	if err := gonet.WriteFrame(s.w, payload); err != nil {
		s.err = fmt.Errorf("record intent: %w", err)
		return
	}
	s.n++
}

// Err returns the first write error.
func (s *FrameSink) Err() error { return s.err }

// Count returns the number of frames written.
func (s *FrameSink) Count() int { return s.n }

// RegisterDecoders installs handlers that rebuild intents from recorded
// frames. onTick receives tick marks, onIntent everything else.
func RegisterDecoders(reg *packet.Registry, onTick func(int64), onIntent func(Intent)) {
	reg.Register(OpTick, func(r *packet.Reader) error {
		onTick(r.ReadQ())
		return nil
	})
	reg.Register(OpAttack, func(r *packet.Reader) error {
		onIntent(Attack{AttackerID: world.ObjectID(r.ReadD()), TargetID: world.ObjectID(r.ReadD()), X: r.ReadD(), Y: r.ReadD()})
		return nil
	})
	reg.Register(OpSkillAttack, func(r *packet.Reader) error {
		onIntent(SkillAttack{AttackerID: world.ObjectID(r.ReadD()), TargetID: world.ObjectID(r.ReadD()),
			SkillID: r.ReadD(), X: r.ReadD(), Y: r.ReadD()})
		return nil
	})
	reg.Register(OpMove, func(r *packet.Reader) error {
		onIntent(Move{ActorID: world.ObjectID(r.ReadD()), Heading: int(r.ReadC()), Mode: MoveMode(r.ReadC()),
			X: r.ReadD(), Y: r.ReadD()})
		return nil
	})
	reg.Register(OpSpawn, func(r *packet.Reader) error {
		onIntent(Spawn{ActorID: world.ObjectID(r.ReadD()), TemplateID: r.ReadD(), MapID: int16(r.ReadH()),
			X: r.ReadD(), Y: r.ReadD(), Heading: int(r.ReadC())})
		return nil
	})
	reg.Register(OpDespawn, func(r *packet.Reader) error {
		onIntent(Despawn{ActorID: world.ObjectID(r.ReadD())})
		return nil
	})
	reg.Register(OpChat, func(r *packet.Reader) error {
		onIntent(Chat{ActorID: world.ObjectID(r.ReadD()), Text: r.ReadS()})
		return nil
	})
}

// Replay reads every frame from src and dispatches it through reg.
func Replay(src io.Reader, reg *packet.Registry) (int, error) {
	n := 0
	for {
		payload, err := gonet.ReadFrame(src)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return n, nil
			}
			return n, err
		}
		if err := reg.Dispatch(payload); err != nil {
			return n, fmt.Errorf("frame %d: %w", n, err)
		}
		n++
	}
}
