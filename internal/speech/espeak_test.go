package speech

import (
	"bytes"
	"encoding/binary"
	"testing"
)

const espeakVoicesOutput = `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  af              --/M      Afrikaans          gmw/af
 5  am              --/M      Amharic            sem/am
 2  en-gb           --/M      English_(Great_Britain) gmw/en               (en 2)
 5  fr-fr           --/F      French_(France)    roa/fr
 5  unparseable
`

func TestParseEspeakVoices(t *testing.T) {
	voices := parseEspeakVoices(espeakVoicesOutput)
	if len(voices) != 4 {
		t.Fatalf("got %d voices, want 4", len(voices))
	}

	for i, v := range voices {
		if v.Index != i {
			t.Errorf("voice %d has index %d; indexes must be dense", i, v.Index)
		}
	}

	first := voices[0]
	if first.Name != "Afrikaans" || first.Languages[0] != "af" || first.Gender != "male" {
		t.Errorf("first voice parsed wrong: %+v", first)
	}

	french := voices[3]
	if french.Gender != "female" || french.Languages[0] != "fr-fr" {
		t.Errorf("french voice parsed wrong: %+v", french)
	}
}

func TestParseEspeakVoicesEmpty(t *testing.T) {
	if got := parseEspeakVoices("Pty Language Age/Gender VoiceName File\n"); len(got) != 0 {
		t.Errorf("header-only output should yield no voices, got %v", got)
	}
}

// buildWAV assembles a canonical 16-bit mono RIFF stream around pcm.
func buildWAV(sampleRate int, pcm []byte, declaredSize int) []byte {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(declaredSize))
	buf.Write(pcm)
	return buf.Bytes()
}

func TestParseWAV(t *testing.T) {
	pcm := []byte{1, 2, 3, 4, 5, 6}
	got, sampleRate, err := parseWAV(buildWAV(22050, pcm, len(pcm)))
	if err != nil {
		t.Fatal(err)
	}
	if sampleRate != 22050 {
		t.Errorf("sample rate: got %d", sampleRate)
	}
	if !bytes.Equal(got, pcm) {
		t.Errorf("pcm: got %v, want %v", got, pcm)
	}
}

func TestParseWAVBogusDeclaredSize(t *testing.T) {
	// Streamed output declares a placeholder data size; the actual payload
	// length wins.
	pcm := []byte{9, 8, 7, 6}
	got, _, err := parseWAV(buildWAV(22050, pcm, 0x7fffffff))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, pcm) {
		t.Errorf("pcm: got %v, want %v", got, pcm)
	}
}

func TestParseWAVRejectsGarbage(t *testing.T) {
	for _, data := range [][]byte{
		nil,
		[]byte("not audio at all"),
		[]byte("RIFF\x00\x00\x00\x00JUNK"),
	} {
		if _, _, err := parseWAV(data); err == nil {
			t.Errorf("parseWAV(%q) should fail", data)
		}
	}
}

func TestEspeakSetRateBounds(t *testing.T) {
	e := &Espeak{rate: espeakDefaultRate, volume: espeakDefaultVolume}

	if err := e.SetRate(espeakMinRate - 1); err == nil {
		t.Error("rate below minimum accepted")
	}
	if err := e.SetRate(espeakMaxRate + 1); err == nil {
		t.Error("rate above maximum accepted")
	}
	if e.rate != espeakDefaultRate {
		t.Errorf("rejected rate mutated state: %v", e.rate)
	}

	if err := e.SetRate(300); err != nil {
		t.Fatal(err)
	}
	if e.rate != 300 {
		t.Errorf("rate not applied: %v", e.rate)
	}
}

func TestEspeakSetVolumeBounds(t *testing.T) {
	e := &Espeak{rate: espeakDefaultRate, volume: espeakDefaultVolume}

	if err := e.SetVolume(-0.1); err == nil {
		t.Error("negative volume accepted")
	}
	if err := e.SetVolume(1.1); err == nil {
		t.Error("volume above 1.0 accepted")
	}
	if e.volume != espeakDefaultVolume {
		t.Errorf("rejected volume mutated state: %v", e.volume)
	}

	if err := e.SetVolume(0); err != nil {
		t.Error("volume 0.0 is a valid boundary")
	}
	if err := e.SetVolume(1); err != nil {
		t.Error("volume 1.0 is a valid boundary")
	}
}

func TestEspeakCurrentDefaultVoice(t *testing.T) {
	e := &Espeak{voiceIndex: -1, rate: espeakDefaultRate, volume: espeakDefaultVolume}
	cur := e.Current()
	if cur.VoiceName != "default" {
		t.Errorf("got voice name %q", cur.VoiceName)
	}
	if cur.Rate != espeakDefaultRate || cur.Volume != espeakDefaultVolume {
		t.Errorf("got %+v", cur)
	}
}
