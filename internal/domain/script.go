package domain

import "encoding/json"

// Script is the editable lesson script the backend produces between
// initiation and rendering. The backend owns the payload shape; only the
// scene list is modeled, every other field is round-tripped untouched so a
// save does not strip content the renderer needs.
type Script struct {
	Scenes []Scene

	extra map[string]json.RawMessage
}

// Scene is one unit of the lesson: a title, narration text and image
// references. Unknown scene fields are preserved the same way script fields
// are.
type Scene struct {
	Title  string   `json:"scene_title"`
	Text   string   `json:"scene_text"`
	Images []string `json:"scene_image"`

	extra map[string]json.RawMessage
}

func (s *Script) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if raw, ok := fields["scenes"]; ok {
		if err := json.Unmarshal(raw, &s.Scenes); err != nil {
			return err
		}
		delete(fields, "scenes")
	}
	s.extra = fields
	return nil
}

func (s Script) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(s.extra)+1)
	for k, v := range s.extra {
		fields[k] = v
	}
	scenes, err := json.Marshal(s.Scenes)
	if err != nil {
		return nil, err
	}
	fields["scenes"] = scenes
	return json.Marshal(fields)
}

func (sc *Scene) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	take := func(key string, dst any) error {
		raw, ok := fields[key]
		if !ok {
			return nil
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return err
		}
		delete(fields, key)
		return nil
	}
	if err := take("scene_title", &sc.Title); err != nil {
		return err
	}
	if err := take("scene_text", &sc.Text); err != nil {
		return err
	}
	if err := take("scene_image", &sc.Images); err != nil {
		return err
	}
	sc.extra = fields
	return nil
}

func (sc Scene) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(sc.extra)+3)
	for k, v := range sc.extra {
		fields[k] = v
	}
	var err error
	if fields["scene_title"], err = json.Marshal(sc.Title); err != nil {
		return nil, err
	}
	if fields["scene_text"], err = json.Marshal(sc.Text); err != nil {
		return nil, err
	}
	images := sc.Images
	if images == nil {
		images = []string{}
	}
	if fields["scene_image"], err = json.Marshal(images); err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}
